package dataviz

import (
	"fmt"
	"math"
	"strings"
)

// timeSeries plots one or more y columns against an x column as a
// line graph, or the first y column as a bar chart. Data values are
// embedded directly in the generated script.
func timeSeries(spec *Spec, ds *Dataset) (string, error) {
	if ds == nil {
		return "", fmt.Errorf("time_series requires a data file")
	}
	yCols := spec.YColumns
	if len(yCols) == 0 {
		return "", fmt.Errorf("time_series requires at least one y column")
	}

	// Bar charts label the x axis rather than scale it, so the x
	// column may hold arbitrary strings.
	if spec.ChartType == "bar" {
		ys, err := ds.Floats(yCols[0])
		if err != nil {
			return "", err
		}
		if len(ys) == 0 {
			return "", fmt.Errorf("time_series data file has no rows")
		}
		return barChart(ys, ds, spec.XColumn)
	}

	var xs []float64
	if spec.XColumn != "" {
		var err error
		xs, err = ds.Floats(spec.XColumn)
		if err != nil {
			return "", err
		}
	} else {
		xs = ds.Index()
	}
	if len(xs) == 0 {
		return "", fmt.Errorf("time_series data file has no rows")
	}

	series := make([][]float64, len(yCols))
	for i, col := range yCols {
		ys, err := ds.Floats(col)
		if err != nil {
			return "", err
		}
		if len(ys) != len(xs) {
			return "", fmt.Errorf("column %q has %d rows, x axis has %d", col, len(ys), len(xs))
		}
		series[i] = ys
	}

	xMin, xMax := bounds(xs)
	yMin, yMax := bounds(series[0])
	for _, ys := range series[1:] {
		lo, hi := bounds(ys)
		yMin = math.Min(yMin, lo)
		yMax = math.Max(yMax, hi)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "axes = Axes(\n")
	fmt.Fprintf(&b, "    x_range=[%s, %s],\n", pyFloat(xMin), pyFloat(xMax))
	fmt.Fprintf(&b, "    y_range=[%s, %s],\n", pyFloat(yMin), pyFloat(yMax))
	fmt.Fprintf(&b, "    axis_config={\"include_numbers\": True},\n")
	fmt.Fprintf(&b, ")\n")
	fmt.Fprintf(&b, "self.play(Create(axes))\n")
	colors := []string{"BLUE", "RED", "GREEN", "YELLOW", "PURPLE"}
	for i, ys := range series {
		fmt.Fprintf(&b, "line_%d = axes.plot_line_graph(\n", i)
		fmt.Fprintf(&b, "    x_values=%s,\n", pyFloatList(xs))
		fmt.Fprintf(&b, "    y_values=%s,\n", pyFloatList(ys))
		fmt.Fprintf(&b, "    line_color=%s,\n", colors[i%len(colors)])
		fmt.Fprintf(&b, "    add_vertex_dots=False,\n")
		fmt.Fprintf(&b, ")\n")
		fmt.Fprintf(&b, "self.play(Create(line_%d), run_time=2)\n", i)
	}
	return b.String(), nil
}

func barChart(ys []float64, ds *Dataset, xColumn string) (string, error) {
	names := make([]string, len(ys))
	if xColumn != "" {
		labels, err := ds.Strings(xColumn)
		if err != nil {
			return "", err
		}
		copy(names, labels)
	} else {
		for i := range names {
			names[i] = fmt.Sprintf("%d", i)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "chart = BarChart(\n")
	fmt.Fprintf(&b, "    values=%s,\n", pyFloatList(ys))
	fmt.Fprintf(&b, "    bar_names=%s,\n", pyStringList(names))
	fmt.Fprintf(&b, ")\n")
	fmt.Fprintf(&b, "self.play(Create(chart), run_time=2)\n")
	return b.String(), nil
}

// vectorField draws an ArrowVectorField over a fixed plane, plus
// optional streamlines animating the flow.
func vectorField(spec *Spec) string {
	fn := spec.FieldFunction
	if fn == "" {
		fn = "pos * 0.5"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "def field_func(pos):\n")
	fmt.Fprintf(&b, "    return %s\n", fn)
	fmt.Fprintf(&b, "field = ArrowVectorField(\n")
	fmt.Fprintf(&b, "    field_func,\n")
	fmt.Fprintf(&b, "    x_range=[-4, 4],\n")
	fmt.Fprintf(&b, "    y_range=[-3, 3],\n")
	fmt.Fprintf(&b, ")\n")
	fmt.Fprintf(&b, "self.play(Create(field), run_time=2)\n")
	if spec.Streamlines {
		fmt.Fprintf(&b, "stream = StreamLines(\n")
		fmt.Fprintf(&b, "    field_func,\n")
		fmt.Fprintf(&b, "    stroke_width=2,\n")
		fmt.Fprintf(&b, "    max_anchors_per_line=30,\n")
		fmt.Fprintf(&b, ")\n")
		fmt.Fprintf(&b, "self.add(stream)\n")
		fmt.Fprintf(&b, "stream.start_animation(warm_up=False, flow_speed=1.5)\n")
	}
	return b.String()
}

// scatter3D places a sphere per data point. The camera calls only run
// when the fragment hosts inside a ThreeDScene; in a flat scene the
// points still render from the default view.
func scatter3D(spec *Spec, ds *Dataset) (string, error) {
	if ds == nil {
		return "", fmt.Errorf("3d_scatter requires a data file")
	}
	xCol, zCol := spec.XColumn, spec.ZColumn
	if xCol == "" || len(spec.YColumns) == 0 || zCol == "" {
		return "", fmt.Errorf("3d_scatter requires x, y, and z columns")
	}
	xs, err := ds.Floats(xCol)
	if err != nil {
		return "", err
	}
	ys, err := ds.Floats(spec.YColumns[0])
	if err != nil {
		return "", err
	}
	zs, err := ds.Floats(zCol)
	if err != nil {
		return "", err
	}
	if len(ys) != len(xs) || len(zs) != len(xs) {
		return "", fmt.Errorf("3d_scatter columns differ in length")
	}

	var b strings.Builder
	b.WriteString(cameraSetup(spec))
	fmt.Fprintf(&b, "axes = ThreeDAxes()\n")
	fmt.Fprintf(&b, "self.play(Create(axes))\n")
	fmt.Fprintf(&b, "points = VGroup()\n")
	for i := range xs {
		fmt.Fprintf(&b, "points.add(Sphere(radius=0.05, color=BLUE).move_to(axes.c2p(%s, %s, %s)))\n",
			pyFloat(xs[i]), pyFloat(ys[i]), pyFloat(zs[i]))
	}
	fmt.Fprintf(&b, "self.play(Create(points), run_time=2)\n")
	return b.String(), nil
}

// surface3D plots a parametric surface from a z = f(x, y) expression.
func surface3D(spec *Spec) string {
	fn := spec.FieldFunction
	if fn == "" {
		fn = "np.sin(np.sqrt(u**2 + v**2))"
	}

	var b strings.Builder
	b.WriteString(cameraSetup(spec))
	fmt.Fprintf(&b, "axes = ThreeDAxes()\n")
	fmt.Fprintf(&b, "def surface_func(u, v):\n")
	fmt.Fprintf(&b, "    return np.array([u, v, %s])\n", fn)
	fmt.Fprintf(&b, "surface = Surface(\n")
	fmt.Fprintf(&b, "    surface_func,\n")
	fmt.Fprintf(&b, "    u_range=[-3, 3],\n")
	fmt.Fprintf(&b, "    v_range=[-3, 3],\n")
	fmt.Fprintf(&b, "    resolution=(20, 20),\n")
	fmt.Fprintf(&b, "    fill_opacity=0.7,\n")
	fmt.Fprintf(&b, ")\n")
	fmt.Fprintf(&b, "self.play(Create(axes))\n")
	fmt.Fprintf(&b, "self.play(Create(surface), run_time=3)\n")
	return b.String()
}

func cameraSetup(spec *Spec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "if isinstance(self, ThreeDScene):\n")
	fmt.Fprintf(&b, "    self.set_camera_orientation(phi=%s * DEGREES, theta=45 * DEGREES)\n",
		pyFloat(spec.CameraAngle))
	if spec.EnableRotation {
		fmt.Fprintf(&b, "    self.begin_ambient_camera_rotation(rate=0.1)\n")
	}
	return b.String()
}

// graphNetwork lays out a node/edge graph with one of Manim's layout
// algorithms.
func graphNetwork(spec *Spec) (string, error) {
	if len(spec.Nodes) == 0 {
		return "", fmt.Errorf("graph_network requires nodes")
	}
	edges := make([]string, len(spec.Edges))
	for i, e := range spec.Edges {
		edges[i] = fmt.Sprintf("(%q, %q)", e[0], e[1])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "graph = Graph(\n")
	fmt.Fprintf(&b, "    %s,\n", pyStringList(spec.Nodes))
	fmt.Fprintf(&b, "    [%s],\n", strings.Join(edges, ", "))
	fmt.Fprintf(&b, "    layout=%q,\n", spec.Layout)
	fmt.Fprintf(&b, "    labels=True,\n")
	fmt.Fprintf(&b, "    vertex_config={\"radius\": 0.3, \"color\": BLUE},\n")
	fmt.Fprintf(&b, "    edge_config={\"stroke_width\": 2},\n")
	fmt.Fprintf(&b, ")\n")
	fmt.Fprintf(&b, "self.play(Create(graph), run_time=2)\n")
	return b.String(), nil
}

// particleSystem scatters dots with a random drift updater.
func particleSystem(spec *Spec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "particles = VGroup()\n")
	fmt.Fprintf(&b, "for _ in range(%d):\n", spec.ParticleCount)
	fmt.Fprintf(&b, "    dot = Dot(\n")
	fmt.Fprintf(&b, "        point=[np.random.uniform(-6, 6), np.random.uniform(-3.5, 3.5), 0],\n")
	fmt.Fprintf(&b, "        radius=%s,\n", pyFloat(spec.ParticleSize))
	fmt.Fprintf(&b, "        color=BLUE,\n")
	fmt.Fprintf(&b, "    )\n")
	fmt.Fprintf(&b, "    dot.add_updater(lambda m, dt: m.shift([\n")
	fmt.Fprintf(&b, "        np.random.uniform(-0.5, 0.5) * dt,\n")
	fmt.Fprintf(&b, "        np.random.uniform(-0.5, 0.5) * dt,\n")
	fmt.Fprintf(&b, "        0,\n")
	fmt.Fprintf(&b, "    ]))\n")
	fmt.Fprintf(&b, "    particles.add(dot)\n")
	fmt.Fprintf(&b, "self.play(FadeIn(particles))\n")
	return b.String()
}

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		hi = lo + 1
	}
	return lo, hi
}
