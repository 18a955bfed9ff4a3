package ant

// Byte widths of the fixed fields.
const (
	IDSize        = 8
	TagSize       = 5
	AddressSize   = 4
	LayerSizeSize = 4
	TypeSize      = 4
	SendTimeSize  = 8
	MsgLenSize    = 4
)

// Offsets inside a medium layer.
const (
	offsetAntID     = 0
	offsetNodeType  = offsetAntID + IDSize
	offsetNextHop   = offsetNodeType + TagSize
	offsetLayerSize = offsetNextHop + AddressSize

	// MediumHeaderSize is the number of bytes a relay strips from the front of
	// the packet before forwarding it.
	MediumHeaderSize = offsetLayerSize + LayerSizeSize
)

// Offsets inside a final layer.
const (
	offsetAntType  = offsetNodeType + TagSize
	offsetSendTime = offsetAntType + TypeSize
	offsetTarget   = offsetSendTime + SendTimeSize
	offsetMsgLen   = offsetTarget + AddressSize
	offsetMessage  = offsetMsgLen + MsgLenSize

	// FinalHeaderSize is the size of the final layer without payload.
	FinalHeaderSize = offsetAntType

	explorerFinalSize = offsetTarget + AddressSize
	loadFinalBaseSize = offsetMessage
)

// MinCapacity is the smallest packet size a simulation may use.
const MinCapacity = 128

// ExplorerHops is the number of layers of an explorer ant.
const ExplorerHops = 2

// Layer tags as written on the wire.
const (
	TagMedium = "MEDIO"
	TagFinal  = "FINAL"
)

// NodeType tells the receiver of a layer what to do with it.
type NodeType int

// The roles a layer can assign to its receiver.
const (
	NodeTypeUnknown NodeType = iota
	NodeTypeMedium
	NodeTypeFinal
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeMedium:
		return "Medium"
	case NodeTypeFinal:
		return "Final"
	default:
		return "Unknown"
	}
}

// Type distinguishes explorers from payload-carrying ants.
type Type uint32

// Ant types, encoded as 4-byte integers.
const (
	TypeExplorer Type = 0
	TypeLoad     Type = 1
)

func (t Type) String() string {
	switch t {
	case TypeExplorer:
		return "Explorer"
	case TypeLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

// LoadSize returns the number of meaningful bytes of a load ant that travels
// through hops nodes and carries a message of msgLen bytes.
func LoadSize(hops, msgLen int) int {
	return MediumHeaderSize*(hops-1) + loadFinalBaseSize + msgLen
}

// ExplorerSize returns the number of meaningful bytes of an explorer ant.
func ExplorerSize() int {
	return MediumHeaderSize*(ExplorerHops-1) + explorerFinalSize
}
