package scene

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteSVG serializes the scene as a standalone SVG document.
func WriteSVG(w io.Writer, s *Scene) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" id="%s" width="%d" height="%d" viewBox="0 0 %d %d" aria-hidden="true">`+"\n",
		escape(s.ID), s.Width, s.Height, s.Width, s.Height)
	fmt.Fprintf(bw, `<g id="%s-map"%s>`+"\n", escape(s.ID), transformAttr(s.Transform))
	for _, l := range s.Layers {
		writeLayer(bw, l, 1)
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

func writeLayer(w *bufio.Writer, l *Layer, depth int) {
	indent := strings.Repeat("  ", depth)
	w.WriteString(indent + "<g")
	if l.ID != "" {
		fmt.Fprintf(w, ` id="%s"`, escape(l.ID))
	}
	if l.Class != "" {
		fmt.Fprintf(w, ` class="%s"`, escape(l.Class))
	}
	w.WriteString(transformAttr(l.Transform) + ">\n")
	for _, p := range l.Paths {
		writePath(w, p, indent+"  ")
	}
	for _, c := range l.Children {
		writeLayer(w, c, depth+1)
	}
	w.WriteString(indent + "</g>\n")
}

func writePath(w *bufio.Writer, p *Path, indent string) {
	if p.Hidden {
		return
	}
	d := PathData(p)
	if d == "" {
		return
	}
	w.WriteString(indent + "<path")
	if p.ID != "" {
		fmt.Fprintf(w, ` id="%s"`, escape(p.ID))
	}
	if p.Class != "" {
		fmt.Fprintf(w, ` class="%s"`, escape(p.Class))
	}
	fmt.Fprintf(w, ` d="%s"`, d)
	w.WriteString(transformAttr(p.Transform))

	var style []string
	if p.Fill != "" {
		style = append(style, "fill:"+p.Fill)
	} else if p.Kind == KindLine {
		style = append(style, "fill:none")
	}
	if p.FillOpacity != 1 {
		style = append(style, "fill-opacity:"+num(p.FillOpacity))
	}
	if p.Stroke != "" {
		style = append(style, "stroke:"+p.Stroke)
	}
	style = append(style, "stroke-width:"+num(p.StrokeWidth)+"px")
	if p.StrokeOpacity != 1 {
		style = append(style, "stroke-opacity:"+num(p.StrokeOpacity))
	}
	if p.DashArray != nil {
		parts := make([]string, len(p.DashArray))
		for i, v := range p.DashArray {
			parts[i] = num(v)
		}
		style = append(style, "stroke-dasharray:"+strings.Join(parts, " "), "stroke-dashoffset:"+num(p.DashOffset))
	}
	fmt.Fprintf(w, ` style="%s"/>`+"\n", escape(strings.Join(style, ";")))
}

// PathData renders the geometry of a path as SVG path commands.
func PathData(p *Path) string {
	var b strings.Builder
	switch p.Kind {
	case KindCircle:
		r := p.Radius
		cx, cy := p.Center.X, p.Center.Y
		fmt.Fprintf(&b, "M%s,%sA%s,%s 0 1,1 %s,%sA%s,%s 0 1,1 %s,%sZ",
			num(cx), num(cy-r), num(r), num(r), num(cx), num(cy+r), num(r), num(r), num(cx), num(cy-r))
	default:
		for _, ring := range p.Rings {
			for i, pt := range ring {
				if i == 0 {
					b.WriteString("M")
				} else {
					b.WriteString("L")
				}
				b.WriteString(num(pt.X) + "," + num(pt.Y))
			}
			if p.Kind == KindPolygon && len(ring) > 0 {
				b.WriteString("Z")
			}
		}
	}
	return b.String()
}

func transformAttr(a *Affine) string {
	if a == nil {
		return ""
	}
	t := "translate(" + num(a.TX) + "," + num(a.TY) + ")"
	if a.Scale != 0 && a.Scale != 1 {
		t += "scale(" + num(a.Scale) + ")"
	}
	if a.Rotate != 0 {
		t += " rotate(" + num(a.Rotate) + ")"
	}
	return ` transform="` + t + `"`
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
