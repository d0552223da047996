package mime

import "path/filepath"

var Extension = map[string]MIME{
	".avif": AVIF,
	".css":  CSS,
	".gif":  GIF,
	".htm":  HTML,
	".html": HTML,
	".jpeg": JPEG,
	".jpg":  JPEG,
	".js":   JS,
	".mjs":  JS,
	".json": JSON,
	".pdf":  PDF,
	".png":  PNG,
	".svg":  SVG,
	".txt":  Plain,
	".wasm": WASM,
	".webp": WEBP,
	".xml":  XML,
	".yaml": YAML,
	".zip":  ZIP,
	".ico":  ICO,
}

// ByExtension guesses the MIME of a file by its extension, falling back to OctetStream.
func ByExtension(path string) MIME {
	if mime, ok := Extension[filepath.Ext(path)]; ok {
		return mime
	}

	return OctetStream
}
