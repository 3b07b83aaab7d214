package common

import "strings"

// PackageOf returns the package part of an internal class name
// ("a/b/C" -> "a/b"). Returns empty string for the default package.
func PackageOf(className string) string {
	i := strings.LastIndexByte(className, '/')
	if i < 0 {
		return ""
	}

	return className[:i]
}

// SimpleName returns the last element of an internal class name
// ("a/b/C" -> "C").
func SimpleName(className string) string {
	return className[strings.LastIndexByte(className, '/')+1:]
}

// ClassName joins a package and a simple name into an internal class name.
func ClassName(pkg, simple string) string {
	if pkg == "" {
		return simple
	}

	return pkg + "/" + simple
}

// ClassResource returns the resource path of an internal class name.
func ClassResource(className string) string {
	return className + ".class"
}
