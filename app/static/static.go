package static

import (
	"net/http"
	"path"
	"path/filepath"

	"github.com/gorilla/mux"
)

// Site serves the storefront pages: the public/ assets, uploaded images,
// the admin and setup pages, and index.html for every other client-side route.
type Site struct {
	rootDir   string
	publicDir string
	public    assetDir
	uploads   assetDir
}

// assetDir serves the files of one directory without listings.
type assetDir struct {
	fs    http.FileSystem
	files http.Handler
}

func newAssetDir(dir string) assetDir {
	fs := http.Dir(dir)
	return assetDir{fs: fs, files: http.FileServer(fs)}
}

// New serves publicDir at / and /public/, and uploadsDir at /uploads/.
// uploadsDir may live outside publicDir.
func New(rootDir, publicDir, uploadsDir string) *Site {
	return &Site{
		rootDir:   rootDir,
		publicDir: publicDir,
		public:    newAssetDir(publicDir),
		uploads:   newAssetDir(uploadsDir),
	}
}

// Register mounts the pages on r. It must be called after the API routes,
// since the fallback matches every remaining GET path.
func (s *Site) Register(r *mux.Router) {
	get := []string{http.MethodGet, http.MethodHead}
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads", http.HandlerFunc(s.uploads.serve))).Methods(get...)
	r.PathPrefix("/public/").Handler(http.StripPrefix("/public", http.HandlerFunc(s.public.serve))).Methods(get...)
	r.Handle("/admin", s.page(filepath.Join(s.rootDir, "admin.html"))).Methods(http.MethodGet)
	r.Handle("/setup", s.page(filepath.Join(s.publicDir, "setup.html"))).Methods(http.MethodGet)
	r.Handle("/access/{token}", s.page(filepath.Join(s.publicDir, "access.html"))).Methods(http.MethodGet)
	r.PathPrefix("/").HandlerFunc(s.serveSPA).Methods(get...)
}

func (s *Site) page(file string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, file)
	})
}

func (s *Site) serveSPA(w http.ResponseWriter, r *http.Request) {
	if s.public.has(path.Clean("/" + r.URL.Path)) {
		s.public.files.ServeHTTP(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.rootDir, "index.html"))
}

func (d assetDir) serve(w http.ResponseWriter, r *http.Request) {
	if !d.has(path.Clean("/" + r.URL.Path)) {
		http.NotFound(w, r)
		return
	}
	d.files.ServeHTTP(w, r)
}

// has reports whether name is a file in the directory, or a subdirectory
// holding an index.html.
func (d assetDir) has(name string) bool {
	f, err := d.fs.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return true
	}

	index, err := d.fs.Open(path.Join(name, "index.html"))
	if err != nil {
		return false
	}
	index.Close()
	return true
}
