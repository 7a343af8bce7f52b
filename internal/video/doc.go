// Package video wraps the external assembly and transcode engines. The
// assembler drives ffmpeg's image sequence input to produce a raw
// intermediate; the transcoder re-encodes it with fixed x264 parameters and
// publishes the asset by atomic rename.
package video
