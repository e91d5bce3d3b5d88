/*
Package route normalizes request paths into the directory keys signpost dispatches on.

A request path like /blog/post-1.html resolves to the [Target] {Ext: "", Key: "blog/post-1"},
meaning "render the page found in the blog/post-1 directory".
Any extension other than htm or html survives resolution
so the dispatcher can negotiate a non-HTML response, e.g. /blog/post-1.json.

References found in page configuration - layouts, modules, views -
and the URLs controllers sub-render with are resolved against the requesting key by [Relative].
A reference prefixed with "@" is resolved against the global view root instead of a domain's sub-root; see [ParseRef].
*/
package route
