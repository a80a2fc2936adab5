// internal/domain/launch/status.go
package launch

// Status is the lifecycle state of a launch, using the numeric ids of the
// Launch Library 2 feed.
type Status int

const (
	StatusGoForLaunch      Status = 1
	StatusToBeDetermined   Status = 2
	StatusLaunchSuccessful Status = 3
	StatusLaunchFailure    Status = 4
	StatusOnHold           Status = 5
	StatusLaunchInFlight   Status = 6
	StatusPartialFailure   Status = 7
	StatusToBeConfirmed    Status = 8
	StatusPayloadDeployed  Status = 9
)

var statusLabels = map[Status]string{
	StatusGoForLaunch:      "Go for Launch",
	StatusToBeDetermined:   "To Be Determined",
	StatusLaunchSuccessful: "Launch Successful",
	StatusLaunchFailure:    "Launch Failure",
	StatusOnHold:           "On Hold",
	StatusLaunchInFlight:   "Launch in Flight",
	StatusPartialFailure:   "Launch was a Partial Failure",
	StatusToBeConfirmed:    "To Be Confirmed",
	StatusPayloadDeployed:  "Payload Deployed",
}

// String returns the human-readable label used in notifications.
func (s Status) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown status"
}

// Known reports whether s is one of the feed's documented states.
func (s Status) Known() bool {
	_, ok := statusLabels[s]
	return ok
}
