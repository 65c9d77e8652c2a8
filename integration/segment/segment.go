package segment

import (
	"runtime"

	"github.com/archprep/archprep/analytics"
	"github.com/archprep/archprep/version"
	segment "github.com/segmentio/analytics-go"
	log "github.com/sirupsen/logrus"
)

// WriteKey is set during the build; telemetry stays disabled without it.
var WriteKey = ""

// Verbose enables verbose logging in the segment client
var Verbose bool

var ctx = &segment.Context{
	App: segment.AppInfo{
		Name:    "archprep",
		Version: version.Version,
		Build:   version.GitCommit,
	},
	OS: segment.OSInfo{
		Name: runtime.GOOS + " " + runtime.GOARCH,
	},
}

// Client publishes anonymized events to segment
type Client struct {
	client    segment.Client
	machineID string
}

// NewClient returns a new segment client
func NewClient() (*Client, error) {
	client, err := segment.NewWithConfig(WriteKey, segment.Config{Verbose: Verbose})
	if err != nil {
		return nil, err
	}
	id, err := analytics.MachineID()
	if err != nil {
		return nil, err
	}
	return &Client{
		client:    client,
		machineID: id,
	}, nil
}

// Publish enqueues a tracking event
func (c Client) Publish(event string, props map[string]interface{}) error {
	log.Debugf("segment event %s - properties: %+v", event, props)
	c.client.Enqueue(segment.Track{
		Context:     ctx,
		AnonymousId: c.machineID,
		Event:       event,
		Properties:  props,
	})
	return nil
}

// Close closes the underlying client
func (c Client) Close() {
	c.client.Close()
}
