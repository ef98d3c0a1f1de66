package comment

type (
	NodeID    uint32
	PayloadID uint32
	ArgID     uint32
	AttrID    uint32
)

const (
	NoNodeID    NodeID    = 0
	NoPayloadID PayloadID = 0
	NoArgID     ArgID     = 0
	NoAttrID    AttrID    = 0
)

func (id NodeID) IsValid() bool    { return id != NoNodeID }
func (id PayloadID) IsValid() bool { return id != NoPayloadID }
func (id ArgID) IsValid() bool     { return id != NoArgID }
func (id AttrID) IsValid() bool    { return id != NoAttrID }
