package resolver

import "context"

// staticDirectory is the fixed-response directory used in mock mode.
// It lists a single candidate, the configured endpoint, for every key.
type staticDirectory struct {
	host string
	port int32
}

var _ Directory = (*staticDirectory)(nil)

func (d *staticDirectory) LookupEndpointsQuery(
	_ context.Context,
	_,
	_,
	_ string,
) (*Endpoints, error) {
	return &Endpoints{
		Port: d.port,
		Pods: []Pod{{IP: d.host}},
	}, nil
}
