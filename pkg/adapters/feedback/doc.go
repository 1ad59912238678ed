// Package feedback provides the feedback collector used after validation.
package feedback
