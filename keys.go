package signpost

type Key string

const (
	// IpAddrKey stashes the IP address of an HTTP request being handled by signpost.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// BodyKey stashes the decoded post data and files of an HTTP request.
	BodyKey Key = "BodyKey"
)

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "signpost context key: " + string(k)
}
