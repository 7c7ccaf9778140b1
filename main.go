package main

import (
	"oss.terrastruct.com/util-go/xmain"

	"github.com/vgraster/vgraster/vgcli"
)

func main() {
	xmain.Main(vgcli.Run)
}
