package k8s

// ServiceNotFoundError marks lookups for services that do not exist in the
// namespace. Checked in the logic layer via its private notFound interface.
type ServiceNotFoundError struct{}

func (e *ServiceNotFoundError) Error() string {
	return "service not found"
}

func (e *ServiceNotFoundError) IsNotFound() {}

var errServiceNotFound = &ServiceNotFoundError{}
