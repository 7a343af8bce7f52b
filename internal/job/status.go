package job

// Status represents the lifecycle of the single in-flight timelapse job.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusDownloading Status = "downloading"
	StatusAssembling  Status = "assembling_video"
	StatusConverting  Status = "converting"
	StatusDone        Status = "done"
)

var allStatuses = []Status{
	StatusIdle,
	StatusDownloading,
	StatusAssembling,
	StatusConverting,
	StatusDone,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Active reports whether s denotes a job in flight. Idle and Done are the two
// terminal states a new job may start from.
func (s Status) Active() bool {
	switch s {
	case StatusDownloading, StatusAssembling, StatusConverting:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}
