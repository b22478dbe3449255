// Package schedule orders workflow nodes by their dependencies.
package schedule
