// Command transcriber drives the video transcription pipeline from the
// terminal: it submits a video to the model, archives the assembled
// transcript, and exposes the run archive through list, show, export, and
// remove subcommands.
package main
