/*
Package host selects the sub-root of the view root a request is served from,
based on the host and port the request was made to.

Rules pair a domain pattern with a target path:

	"{tenant}.example.com"       -> "tenants/{tenant}"
	"*.example.com:8080"         -> "staging"
	"example.com:{port}"         -> "ports/{port}"

A label may be a literal, "*" matching any one label, or "{name}" matching and capturing any one label.
The port may be omitted or "*" to match any port, a number, or "{name}" to match and capture any port.

When several rules match a host, the one with the most labels wins;
ties favor fewer wildcards, then a target needing no substitution, then an exact port.
*/
package host
