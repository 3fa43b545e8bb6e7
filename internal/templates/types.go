package templates

// File is one generated file: a path relative to the project root and its
// content.
type File struct {
	Path    string
	Content string
	// Optional files are written only when absent and never fail the run.
	Optional bool
}

// ProjectData contains the data passed to project templates
type ProjectData struct {
	Name           string
	Port           int
	SrcDir         string
	Collection     string
	RegistryImport string
}

// ModuleData contains the data passed to module templates
type ModuleData struct {
	Name          string
	ModulePath    string
	TypeName      string
	ConstantName  string
	Plural        string
	Title         string
	RouteVar      string
	ServiceImport string
	TypesImport   string
	SharedImport  string
}
