// Package process terminates the headless browser together with the helper
// processes it spawned.
package process
