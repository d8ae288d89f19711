package main

import "github.com/redactyl/zipcrack/cmd/zipcrack"

func main() { zipcrack.Execute() }
