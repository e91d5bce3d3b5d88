package template

import (
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/xy-planning-network/signpost"
)

// Asset encloses the environment and the filesystem a static directory is served from,
// so when called executing a template, emits a URI for a file under that directory.
// It returns "asset" as the name of the function for convenient passing to a template.FuncMap.
//
// Outside of development and testing, the URI carries a version derived from the file's size and modification time,
// letting static files be cached for long periods.
func Asset(env signpost.Environment, prefix string, filesys fs.FS) (string, func(string) string) {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = ""
	}

	return "asset", func(assetPath string) string {
		assetPath = strings.TrimPrefix(path.Clean("/"+assetPath), "/")
		uri := prefix + "/" + assetPath

		if env.IsDevelopment() || env.IsTesting() || filesys == nil {
			return uri
		}

		fi, err := fs.Stat(filesys, assetPath)
		if err != nil || fi.IsDir() {
			return uri
		}

		v := xxhash.Sum64String(strconv.FormatInt(fi.Size(), 10) + "-" + strconv.FormatInt(fi.ModTime().UnixNano(), 10))
		return uri + "?v=" + strconv.FormatUint(v, 36)
	}
}
