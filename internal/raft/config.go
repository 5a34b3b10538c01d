package raft

import "time"

// Config holds the tunable timing parameters of the replication engine.
// Defaults follow spec.md §4.1/§5: election timeout in [150ms, 300ms),
// heartbeat interval well under that, and bounded RPC timeouts.
type Config struct {
	ElectionTimeoutMin time.Duration
	ElectionTimeoutMax time.Duration
	HeartbeatInterval  time.Duration

	AppendEntriesTimeout time.Duration
	RequestVoteTimeoutMin time.Duration
	RequestVoteTimeoutMax time.Duration
	ClientRequestTimeout  time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		ElectionTimeoutMin:    150 * time.Millisecond,
		ElectionTimeoutMax:    300 * time.Millisecond,
		HeartbeatInterval:     75 * time.Millisecond,
		AppendEntriesTimeout:  time.Second,
		RequestVoteTimeoutMin: 800 * time.Millisecond,
		RequestVoteTimeoutMax: 2500 * time.Millisecond,
		ClientRequestTimeout:  5 * time.Second,
	}
}
