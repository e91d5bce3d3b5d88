/*
Package filecache memoizes artifacts read from a view root,
reloading each one only when its modification time changes.

A Cache is generic over the artifact it holds;
a Provider supplies the modification time and the freshly loaded artifact for a name.
JSONProvider and TextProvider read JSON documents and raw text from an fs.FS.

In cache mode, an artifact already in the Cache is returned without consulting its Provider.
Watch evicts artifacts on filesystem events so cache mode can still pick up edits.
*/
package filecache
