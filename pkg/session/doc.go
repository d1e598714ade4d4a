/*
Package session hosts many isolated editors keyed by session id.

An Editor is single-threaded. The Manager serializes every access to one
session behind a per-session mutex (reference counted, so idle sessions do not
leak locks) and, when a DistributedLocker is configured, behind a lock shared
by every replica.
*/
package session
