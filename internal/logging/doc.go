// Package logging builds the slog loggers used across clipper and carries
// the shared attribute vocabulary (job id, stage, segment index) so log
// output stays greppable across subsystems.
package logging
