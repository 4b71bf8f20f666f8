// Package lang implements petuhlang, a small marker language whose core is a
// symbol-synthesis engine.
//
// A program declares names with line-anchored markers and defines them later.
// Definitions are synthesized at run time: classes become [Type] descriptors
// derived from [RootType], and functions become [Function] values compiled
// from body text, or [Constant] values wrapping any other payload.
//
// # Pipeline
//
// A [Session] processes a program in two passes:
//
//  1. Activation. [Scan] extracts the declared names from the source text,
//     and [Session.Activate] binds a placeholder for each one through the
//     [Strategy]: a [FunctionPlaceholder] for every function marker, then a
//     [ClassPlaceholder] for every class marker.
//  2. Execution. [Session.Exec] evaluates each statement, turning
//     placeholders into definitions in the session's [Namespace].
//
// # Statements
//
//	using >> petuhlang
//
//	function >> greet
//	function >> greet(arg("name"), kwarg("punct", "!"))[`
//	    msg = "hello " + name
//	    return msg + punct
//	`]
//	function >> answer()[42]
//
//	pyclass >> Animal
//	pyclass >> Dog
//	pyclass >> Animal()
//	pyclass >> Dog(Animal)
//	pyclass >> Dog.createInstance("rex")
//
//	then >> greet("world")
//	retrieve >> answer()
//
// Arguments, parents, bodies and then/retrieve operands are expr-lang
// expressions evaluated against the namespace and the builtins.
//
// # Function bodies
//
// Body text is dedented and compiled line by line. A line is one of:
//
//	NAME = EXPR       assign a local
//	return EXPR       yield EXPR (a bare return yields nil)
//	retrieve >> EXPR  same as return
//	pass              ignored
//	# comment         ignored
//	EXPR              evaluated for effect
//
// Parameters, locals, namespace bindings and builtins are visible, in that
// order of precedence. Namespace bindings are read when the function is
// called, so a body may call a function that is defined after it.
//
// # Builtins
//
//	env(key)                  process environment
//	cwd()                     working directory
//	hostname                  host name
//	platform.OS, .Arch        host platform
//	path.abs, .cat, .rel      path manipulation
//	file.exists, .isDir       filesystem queries
//	mung.prefix, .prefixif    PATH-style list manipulation
//	cprint(msg, color, ...)   ANSI-styled text
//	arg(name), kwarg(name, v) parameter declarations
package lang
