package analytics

import (
	"sync"
	"time"
)

// Phase reports per-phase analytics events
type Phase struct {
	props     map[string]interface{}
	start     time.Time
	propmutex sync.Mutex
}

// SetProp sets a value to a datapoint by key
func (p *Phase) SetProp(key string, value interface{}) {
	p.propmutex.Lock()
	defer p.propmutex.Unlock()

	p.props[key] = value
}

// Before prepares the analytics properties and sets the start time
func (p *Phase) Before(title string) error {
	p.props = make(map[string]interface{})
	p.props["name"] = title
	p.start = time.Now()

	return nil
}

// After enqueues the sending of analytics
func (p *Phase) After(result error) error {
	p.propmutex.Lock()
	defer p.propmutex.Unlock()

	p.props["duration"] = time.Since(p.start)

	var event string
	if result == nil {
		event = "phase-success"
	} else {
		event = "phase-failure"
	}

	return Client.Publish(event, p.props)
}
