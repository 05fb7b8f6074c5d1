// Package models defines the core domain models for receiptsplit.
//
// # Models
//
//   - ReceiptData: the receipt being split (items, subtotal, tax, tip, total)
//   - ReceiptItem: a single line on the receipt, assignable to one or more people
//   - PersonSummary: the derived per-person share of a receipt
//   - Session: one user's working state (receipt, pending merge, conversation)
//   - RawReceipt / CommandResult: shapes returned by the external OCR and NLU services
//
// People are identified by free-text names. There are no user accounts.
//
// # Conventions
//
//  1. ReceiptItem.Price is the line total (unit price × quantity), never a unit price.
//  2. ReceiptData.Subtotal always equals the sum of item prices once an item is added,
//     edited or deleted, and Total equals Subtotal + Tax + Tip after any change to them.
//  3. Item IDs are unique within a receipt and never reassigned.
//  4. Values are copied, not shared: use Clone before mutating a receipt you do not own.
package models
