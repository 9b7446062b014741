// Package lock keeps two fieldmon processes from driving the same RS-485
// bus. A lock is a directory created with mkdir (atomic on every local
// filesystem) holding an info.json that names the holder.
//
// A lock whose holder process is gone, or that is older than the stale
// threshold, is removed and re-acquired.
package lock
