// Package redirect finds call sites of reflective entry points whose string
// argument names a class or resource, and retargets them to forwarding
// methods of a helper class that maps the argument first.
//
// Redirection never changes instruction sizes: invokevirtual and
// invokestatic become invokestatic of a new Methodref, ldc and ldc_w of a
// method handle keep their form and load a new MethodHandle. Branch offsets,
// exception tables and stack maps therefore stay valid.
package redirect
