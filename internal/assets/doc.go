// Package assets provides the CSS styles and HTML template of the quiz
// review sheet.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles and template (go:embed)
//	    ├── FilesystemLoader  - custom directory on disk
//	    └── Resolver          - custom first, embedded fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css
//	└── templates/
//	    └── {name}.html
//
// Asset names are validated to prevent path traversal; FilesystemLoader
// also resolves symlinks and verifies paths stay within basePath.
package assets
