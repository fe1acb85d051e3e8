package gpu

// GL enum values used by the binding layer. They match the values defined by the
// OpenGL headers so the GL device passes them through untouched.
const (
	TypeByte          uint32 = 0x1400
	TypeUnsignedByte  uint32 = 0x1401
	TypeShort         uint32 = 0x1402
	TypeUnsignedShort uint32 = 0x1403
	TypeInt           uint32 = 0x1404
	TypeUnsignedInt   uint32 = 0x1405
	TypeFloat         uint32 = 0x1406

	TypeFloatVec2       uint32 = 0x8B50
	TypeFloatVec3       uint32 = 0x8B51
	TypeFloatVec4       uint32 = 0x8B52
	TypeIntVec2         uint32 = 0x8B53
	TypeIntVec3         uint32 = 0x8B54
	TypeIntVec4         uint32 = 0x8B55
	TypeBool            uint32 = 0x8B56
	TypeBoolVec2        uint32 = 0x8B57
	TypeBoolVec3        uint32 = 0x8B58
	TypeBoolVec4        uint32 = 0x8B59
	TypeFloatMat2       uint32 = 0x8B5A
	TypeFloatMat3       uint32 = 0x8B5B
	TypeFloatMat4       uint32 = 0x8B5C
	TypeSampler2D       uint32 = 0x8B5E
	TypeSamplerCube     uint32 = 0x8B60
	TypeSampler2DShadow uint32 = 0x8B62
)

const (
	ArrayBuffer        uint32 = 0x8892
	ElementArrayBuffer uint32 = 0x8893
	UniformBuffer      uint32 = 0x8A11

	StaticDraw  uint32 = 0x88E4
	DynamicDraw uint32 = 0x88E8
)

const (
	Texture2D      uint32 = 0x0DE1
	TextureCubeMap uint32 = 0x8513

	FormatRGBA           uint32 = 0x1908
	FormatDepthComponent uint32 = 0x1902

	InternalRGBA8   int32 = 0x8058
	InternalRGBA32F int32 = 0x8814
	InternalDepth24 int32 = 0x81A6

	FilterNearest            int32 = 0x2600
	FilterLinear             int32 = 0x2601
	FilterLinearMipmapLinear int32 = 0x2703

	WrapRepeat         int32 = 0x2901
	WrapClampToEdge    int32 = 0x812F
	WrapMirroredRepeat int32 = 0x8370
)

const (
	Triangles uint32 = 0x0004
	Lines     uint32 = 0x0001
)
