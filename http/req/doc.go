/*
Package req reads the payload of an HTTP request.

ParseRequest decodes post data, whether JSON, URL-encoded or multipart, along with any uploaded files.
Uploaded files are written to temporary files the returned cleanup function removes.

A Parser decodes payloads into a pointer to a struct,
checking the struct's data against the rules set by its "validate" struct tags.
Decoding and validation failures are translated to signpost sentinel errors
so callers see the same errors whatever the encoding.
*/
package req
