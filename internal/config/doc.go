// Package config defines the format-agnostic model of a task arrangement:
// ordered stages of dependency expressions plus the descriptors of every task
// they mention. It also owns the configuration error taxonomy shared by the
// loader, the parameter resolver and the expression compiler.
//
// Concrete readers for JSON, YAML and HCL files live in the loader package.
package config
