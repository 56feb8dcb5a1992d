package rangecoder

// ContextID names one of the decoder's dynamic adaptive coding contexts. The
// order below is the wire contract: it is read verbatim off the reference
// decoder's context enumeration and MUST NOT be reordered or renumbered.
type ContextID int

// Dynamic context identifiers, in wire order.
const (
	CZero ContextID = iota
	CShading
	CDiffuseCount
	CDiffuseColorSign
	CColorDiffR
	CColorDiffG
	CColorDiffB
	CColorDiffA
	CSpecularCount
	CSpecularColorSign
	CTexCoordCount
	CTexCoordSign
	CTexCDiffU
	CTexCDiffV
	CTexCDiffS
	CTexCDiffT
	CFaceCnt
	CFaceOrnt
	CThrdPosType
	CLocal3rdPos
	CStayMove0
	CStayMove1
	CStayMove2
	CStayMove3
	CStayMove4
	CDiffuseKeepChange
	CDiffuseChangeType
	CDiffuseChangeIndexNew
	CDiffuseChangeIndexLocal
	CDiffuseChangeIndexGlobal
	CSpecularKeepChange
	CSpecularChangeType
	CSpecularChangeIndexNew
	CSpecularChangeIndexLocal
	CSpecularChangeIndexGlobal
	CTCKeepChange
	CTCChangeType
	CTCChangeIndexNew
	CTCChangeIndexLocal
	CTCChangeIndexGlobal
	CColorDup
	CColorIndexType
	CColorIndexLocal
	CColorIndexGlobal
	CTexCDup
	CTexCIndexType
	CTextureIndexLocal
	CTextureIndexGlobal
	CPosDiffSign
	CPosDiffX
	CPosDiffY
	CPosDiffZ
	CNormalCnt
	CDiffNormalSign
	CDiffNormalX
	CDiffNormalY
	CDiffNormalZ
	CNormalIdx
	CPointCnt
	CDiffDup
	CSpecDup
	CLineCnt
	// NumContexts is the dynamic context count (62), not 63: spec.md's
	// illustrative enumeration text overcounts by one against the reference
	// decoder's actual ContextEnum. Names and order are unchanged; only the
	// total differs. See DESIGN.md.
	NumContexts
)

// context is an adaptive frequency histogram. Symbol 0 is the escape symbol
// and always starts with frequency 1 so every context initially predicts an
// escape (spec.md §4.2, §8 property 4).
type context struct {
	freq  []uint32
	total uint32
}

func newContext() *context {
	return &context{freq: []uint32{1}, total: 1}
}

func (c *context) reset() {
	c.freq = []uint32{1}
	c.total = 1
}

func (c *context) frequency(symbol uint32) uint32 {
	if int(symbol) >= len(c.freq) {
		return 0
	}
	return c.freq[symbol]
}

// symbolFromCumulative maps cumFreq (a decoded code-derived cumulative value
// in [0,total)) to the smallest symbol s.t. running sum (exclusive) +
// freq[symbol] > cumFreq, returning that symbol, the cumulative frequency
// below it, and its own frequency.
func (c *context) symbolFromCumulative(cumFreq uint32) (symbol uint32, cum uint32, f uint32) {
	var running uint32
	for s, fr := range c.freq {
		if running+fr > cumFreq {
			return uint32(s), running, fr
		}
		running += fr
	}
	// Out-of-range cumFreq (malformed stream): clamp to the last known
	// symbol rather than panic; BlockReader-level truncation handling is
	// responsible for surfacing the real error.
	last := uint32(len(c.freq) - 1)
	return last, c.total - c.freq[last], c.freq[last]
}

// addSymbol bumps symbol's frequency, growing the table as needed, and
// rescales once total crosses the threshold (spec.md §4.2 step 5).
func (c *context) addSymbol(symbol uint32) {
	if symbol > 0xFFFF {
		return
	}
	if int(symbol) >= len(c.freq) {
		grown := make([]uint32, symbol+1)
		copy(grown, c.freq)
		c.freq = grown
	}
	if c.total >= 0x1FFF {
		var total uint32
		for i := range c.freq {
			c.freq[i] >>= 1
			total += c.freq[i]
		}
		c.freq[0]++
		total++
		c.total = total
	}
	c.freq[symbol]++
	c.total++
}
