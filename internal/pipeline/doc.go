// Package pipeline turns one uploaded video into captioned vertical segments.
// It splits the upload, transcribes every segment through the transcription
// service, renders the caption/overlay graph per segment, and returns the
// processed filenames in sequence order. The first segment failure aborts the
// whole run.
package pipeline
