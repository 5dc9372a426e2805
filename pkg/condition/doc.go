// Package condition implements the boolean targeting expressions audiences
// are built from.
//
// A Tree is a tagged node: AND/OR/NOT operators over children, or a leaf
// matching one user attribute against an expected value with case-sensitive
// exact string comparison. Evaluation is a single recursive walk; there is
// no operator class hierarchy to extend.
//
// Semantics:
//   - a missing attribute fails the leaf, it does not raise an error
//   - an empty AND is true, an empty OR is false
//   - a nil tree expresses no restriction and evaluates to true
//
// # Usage
//
//	tree := condition.NewNot(condition.NewMatch("browser_type", "firefox"))
//	ok, err := tree.Evaluate(map[string]string{"browser_type": "chrome"})
//	// ok == true
package condition
