// Package assets provides the HTML templates and stylesheets that make up a
// document template family.
//
// # Loaders
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - families compiled into the binary (classic)
//	    ├── DirLoader         - families from a directory on disk
//	    └── Resolver          - custom directory first, embedded fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {family}.css
//	└── templates/
//	    └── {family}/
//	        └── document.html
//
// A family needs both files. Family names are validated before any path is
// built, and DirLoader resolves symlinks to keep reads inside basePath.
package assets
