package generator

// File is one generated file.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// FileSet is an ordered filename -> content mapping. Order is the display
// order of the viewer tabs; names are unique.
type FileSet struct {
	files []File
}

// NewFileSet builds a set from files in order. A later duplicate name
// replaces the earlier content but keeps the earlier position.
func NewFileSet(files ...File) *FileSet {
	fs := &FileSet{}
	for _, f := range files {
		fs.Put(f.Name, f.Content)
	}
	return fs
}

// Put sets content for name, appending name if it is new.
func (fs *FileSet) Put(name, content string) {
	for i := range fs.files {
		if fs.files[i].Name == name {
			fs.files[i].Content = content
			return
		}
	}
	fs.files = append(fs.files, File{Name: name, Content: content})
}

// Get returns the content stored under name.
func (fs *FileSet) Get(name string) (string, bool) {
	if fs == nil {
		return "", false
	}
	for _, f := range fs.files {
		if f.Name == name {
			return f.Content, true
		}
	}
	return "", false
}

// Names returns the filenames in order.
func (fs *FileSet) Names() []string {
	if fs == nil {
		return nil
	}
	names := make([]string, len(fs.files))
	for i, f := range fs.files {
		names[i] = f.Name
	}
	return names
}

// Files returns a copy of the entries in order.
func (fs *FileSet) Files() []File {
	if fs == nil {
		return nil
	}
	return append([]File(nil), fs.files...)
}

func (fs *FileSet) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.files)
}
