// Package card_review coordinates review sessions: it picks due cards,
// records answers through the SM-2 scheduler in a transaction, and manages
// reading annotations and postponements.
package card_review
