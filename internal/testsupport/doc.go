// Package testsupport provides builders and stub collaborators shared by
// package tests.
package testsupport
