// Package job holds the shared state of the single in-flight timelapse job:
// the status enumeration, the mutex-guarded progress tracker, and the
// cooperative cancel signal observed at pipeline checkpoints.
package job
