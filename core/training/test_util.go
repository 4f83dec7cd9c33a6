package training

import "time"

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose clock is frozen at now.
func NewServiceMock(repo Repository, now time.Time, saveRetries ...int) Service {
	retries := 3
	if len(saveRetries) > 0 {
		retries = saveRetries[0]
	}
	return &serviceMock{
		service: service{
			repo:        repo,
			saveRetries: retries,
			now:         func() time.Time { return now },
		},
	}
}
