// Package timelapse contains the job controller: the pipeline state machine
// that fetches catalog descriptors, stages image downloads, assembles and
// transcodes the video, and unwinds cleanly on cancellation or failure.
package timelapse
