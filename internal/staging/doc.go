// Package staging manages the ephemeral per-job staging area: indexed frame
// files between acquisition and assembly, the raw intermediate video, and
// best-effort cleanup.
package staging
