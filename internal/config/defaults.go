package config

// DefaultHgPath is resolved against PATH by os/exec.
const DefaultHgPath = "hg"

// DefaultPoolSize is the default number of idle sessions per repository
// in a session pool.
const DefaultPoolSize = 4

// DefaultBackoffInitialMs is the first pool-acquisition retry delay.
const DefaultBackoffInitialMs = 100

// DefaultBackoffMaxMs caps pool-acquisition retry delay growth.
const DefaultBackoffMaxMs = 5000

// DefaultSpawnsPerSecond throttles how fast a pool may launch `hg`
// processes.
const DefaultSpawnsPerSecond = 5.0
