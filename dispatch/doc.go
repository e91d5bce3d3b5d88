/*
Package dispatch answers requests by convention: the path of a request names a directory key
under a view root, and the files found for that key decide the response.

For the key blog/post-1, an [Engine] looks for:
  - blog/post-1.json, the page's configuration, merged over the global defaults and its layout's configuration
  - a [Controller] registered as blog/post-1, computing the data the page renders
  - blog/post-1.html, the page's template

When the configuration names a layout, the layout's controller runs ahead of the page's own
and the layout's template wraps the page's rendering, available to it as __layout__.

Requests for other extensions, such as blog/post-1.json, select the matching entry of a
[ByExtension] controller and respond with what it returns.

# Domains

Config.Domains selects a sub-root for the host a request is made against,
so one view root serves many sites:

	"{tenant}.example.com": "tenants/{tenant}"

# Errors

Every failure becomes a status code and a message.
An Engine renders the page configured for that code in Config.Errors, errors/<code> by default,
once: a failing error page falls back to the message itself.
*/
package dispatch
