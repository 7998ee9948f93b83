package postage

// Module identifies the delivery module a request is computed for.
type Module interface {
	// Code is the stable identifier of the module, e.g. "flat-rate".
	Code() string

	// Title is a human readable name.
	Title() string
}
