// encodecctl compresses WAV audio into ecdc code streams and back using a
// local EnCodec model artifact.
package main

import "github.com/thesyncim/goencodec/cmd/encodecctl/commands"

func main() {
	commands.Execute()
}
