//go:build mage

/*
Copyright 2024

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build

// Build compiles import-sharia into the current directory
func Build() error {
	mg.Deps(Test)
	return sh.RunV("go", "build", "-o", "import-sharia", ".")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Lint runs go vet over the module
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes the build output
func Clean() error {
	return sh.Rm("import-sharia")
}
