// Package services defines the error taxonomy shared by the pipeline stages
// and the clients that talk to external collaborators (the transcription
// service and the media engine). Errors are tagged with sentinel markers so
// the request boundary can classify failures without string matching.
package services
