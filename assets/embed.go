// Package assets embeds the web page served by `appgen serve`.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed web
var assetsFS embed.FS

// PageTemplate is the html/template source of the generator page.
const PageTemplate = "web/index.html.tmpl"

func GetPage() ([]byte, error) {
	return assetsFS.ReadFile(PageTemplate)
}

func GetAsset(name string) ([]byte, error) {
	return assetsFS.ReadFile(name)
}

// GetStaticFS returns the web directory rooted so that "app.js" resolves.
func GetStaticFS() (fs.FS, error) {
	return fs.Sub(assetsFS, "web")
}

func GetAssetsFS() fs.FS {
	return assetsFS
}

func ListAssets() ([]string, error) {
	var files []string
	err := fs.WalkDir(assetsFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && path != "." {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func AssetExists(name string) bool {
	_, err := assetsFS.ReadFile(name)
	return err == nil
}
