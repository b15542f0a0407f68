/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/tokenstream/cmd/tokenstream/cmd"

func main() {
	cmd.Execute()
}
