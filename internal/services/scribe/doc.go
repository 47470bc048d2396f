// Package scribe implements the client for the asynchronous transcription
// service. A transcription is three calls: upload the media bytes, create a
// job from the returned resource locator, then poll the job until it
// completes or fails. The poll loop is deadline-bounded with exponential
// backoff so a stuck remote job cannot hang the pipeline forever.
package scribe
