/*
Package router lays out the routes a signpost web server answers.

A [*Router] wraps [mux.Router] and registers three kinds of routes:

  - static mounts, serving files from an [io/fs.FS] with a Cache-Control max-age ([Router.Static])
  - a metrics endpoint ([Router.Metrics])
  - a catch-all, usually a [dispatch.Engine], receiving every other request ([Router.CatchAll])

A static mount only matches requests naming a file that exists under it,
so a missing file is answered by the catch-all like any other page.
Register static mounts and metrics before the catch-all: routes match in the order they are registered.

Middlewares added with [Router.OnEveryRequest] wrap the catch-all and every [Route].
*/
package router
