package stage

// Health reports whether one pipeline stage can currently take work, for
// example whether the split stage can find its ffmpeg binaries. Detail
// carries the reason when Ready is false.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Ready records a stage that can take work.
func Ready(name string) Health {
	return Health{Name: name, Ready: true}
}

// NotReady records a stage that cannot take work, and why.
func NotReady(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
