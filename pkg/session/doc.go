/*
Package session implements a registry of live chat sessions.

It provides high-level abstractions for handling concurrent access to
conversations from multiplexed surfaces such as the HTTP server, guaranteeing
a single outstanding dispatch per session while the transcripts themselves
stay in memory.
*/
package session
