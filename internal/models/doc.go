// Package models defines the core domain models for Kate.
//
// # Models
//
//   - Event: a shared occasion with an organizer and payment details
//   - Participant: a member of one event, linked to a Telegram user
//   - Procurement: a purchase or task with price, responsible party and
//     contributors
//   - Transfer: a planned payment from a debtor to a creditor
//   - PaymentState: the persisted "paid" mark for a planned transfer
//
// Balances and transfers are derived on every request and are not stored;
// PaymentState is the only settlement data that outlives a request.
//
// # Design Principles
//
//  1. **Exact money**: every amount is a money.Amount in minor units
//  2. **IDs, not pointers**: relationships are expressed with ID strings
//  3. **Absent is explicit**: an unpriced procurement has a nil Price
package models
