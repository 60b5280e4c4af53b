// Package state provides a lightweight FSM/session manager for Telegram bots.
// Each user owns exactly one session; conversations store their accumulated
// answers in the session's temp bag and advance its state between turns.
package state
