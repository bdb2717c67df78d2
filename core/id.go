package core

import (
	"fmt"
	"sync/atomic"

	"pkt.systems/wheelhouse/schema"
)

var (
	tabSeq      atomic.Int64
	downloadSeq atomic.Int64
	menuSeq     atomic.Int64
)

func newTabID() schema.TabID {
	return schema.TabID(fmt.Sprintf("tab-%d", tabSeq.Add(1)))
}

func newDownloadID() schema.DownloadID {
	return schema.DownloadID(fmt.Sprintf("dl-%d", downloadSeq.Add(1)))
}

func newMenuID() MenuID {
	return MenuID(menuSeq.Add(1))
}
