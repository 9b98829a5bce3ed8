// Package testsupport holds helpers shared by package tests: temp-rooted
// configs, file trees and a scriptable fake borg executable.
package testsupport
