package cells

import "github.com/consensys/pptrees/prefix"

func orCombine2() Cell {
	return Cell{
		Name: "pos_or",
		Kind: prefix.Cocycle,
		Ins: []Port{
			{Name: "gin", Bits: 2, Split: []int{1, 1}},
		},
		Outs: []Port{
			{Name: "gout", Bits: 1},
		},
		Verilog: `module pos_or(gin, gout);
	input [1:0] gin;
	output gout;

	or2 U1(gout,gin[1],gin[0]);
endmodule`,
		VHDL: `entity pos_or is
	port (
		gin  : in  std_logic_vector(1 downto 0);
		gout : out std_logic
	);
end entity;

architecture behavior of pos_or is
begin
	U1: or2 port map (A => gin(1), B => gin(0), Y => gout);
end architecture;`,
		Eval: func(in []bool) []bool {
			return []bool{in[0] || in[1]}
		},
		Delay: 1.7,
	}
}

func orBuffer() Cell {
	return Cell{
		Name: "pos_buffer",
		Kind: prefix.Buffer,
		Ins: []Port{
			{Name: "gin", Bits: 1, Split: []int{1}},
		},
		Outs: []Port{
			{Name: "gout", Bits: 1},
		},
		Verilog: `module pos_buffer(gin, gout);
	input gin;
	output gout;

	buf1 U1(gout,gin);
endmodule`,
		VHDL: `entity pos_buffer is
	port (
		gin  : in  std_logic;
		gout : out std_logic
	);
end entity;

architecture behavior of pos_buffer is
begin
	U1: buf1 port map (A => gin, Y => gout);
end architecture;`,
		Eval: func(in []bool) []bool {
			return []bool{in[0]}
		},
		Delay: 2.0,
	}
}

// Or returns the cell library of a prefix OR scan, where output bit i
// is the OR of input bits 0 through i. The scan carries no propagate
// signal, so the carry operator degenerates to a plain OR and the grey
// and buffer variants share bodies with their ungreyed forms.
func Or() *Library {
	grey := orCombine2()
	grey.Kind = prefix.Grey
	bufGrey := orBuffer()
	bufGrey.Kind = prefix.BufferGrey
	return mustLibrary("pos", []Cell{
		{
			Name: "pos_pre",
			Kind: prefix.Pre,
			Ins: []Port{
				{Name: "a_in", Bits: 1, External: true},
			},
			Outs: []Port{
				{Name: "gout", Bits: 1},
			},
			Verilog: `module pos_pre(a_in, gout);
	input a_in;
	output gout;

	buf1 U1(gout,a_in);
endmodule`,
			VHDL: `entity pos_pre is
	port (
		a_in : in  std_logic;
		gout : out std_logic
	);
end entity;

architecture behavior of pos_pre is
begin
	U1: buf1 port map (A => a_in, Y => gout);
end architecture;`,
			Eval: func(in []bool) []bool {
				return []bool{in[0]}
			},
			Delay: 1.0,
		},
		{
			Name: "pos_pre_cin",
			Kind: prefix.PreCin,
			Ins: []Port{
				{Name: "cin", Bits: 1, External: true},
			},
			Outs: []Port{
				{Name: "gout", Bits: 1},
			},
			Verilog: `module pos_pre_cin(cin, gout);
	input cin;
	output gout;

	buf1 U1(gout,cin);
endmodule`,
			VHDL: `entity pos_pre_cin is
	port (
		cin  : in  std_logic;
		gout : out std_logic
	);
end entity;

architecture behavior of pos_pre_cin is
begin
	U1: buf1 port map (A => cin, Y => gout);
end architecture;`,
			Eval: func(in []bool) []bool {
				return []bool{in[0]}
			},
			Delay: 1.0,
		},
		orCombine2(),
		{
			Name: "pos_or3",
			Kind: prefix.Cocycle3,
			Ins: []Port{
				{Name: "gin", Bits: 3, Split: []int{1, 1, 1}},
			},
			Outs: []Port{
				{Name: "gout", Bits: 1},
			},
			Verilog: `module pos_or3(gin, gout);
	input [2:0] gin;
	output gout;
	wire gmid;

	or2 U1(gmid,gin[1],gin[0]);
	or2 U2(gout,gin[2],gmid);
endmodule`,
			VHDL: `entity pos_or3 is
	port (
		gin  : in  std_logic_vector(2 downto 0);
		gout : out std_logic
	);
end entity;

architecture behavior of pos_or3 is
	signal gmid : std_logic;
begin
	U1: or2 port map (A => gin(1), B => gin(0), Y => gmid);
	U2: or2 port map (A => gin(2), B => gmid, Y => gout);
end architecture;`,
			Eval: func(in []bool) []bool {
				return []bool{in[0] || in[1] || in[2]}
			},
			Delay: 3.4,
		},
		grey,
		orBuffer(),
		bufGrey,
		{
			Name: "pos_post",
			Kind: prefix.Post,
			Ins: []Port{
				{Name: "gin", Bits: 2, Split: []int{1, 1}},
			},
			Outs: []Port{
				{Name: "sum", Bits: 1},
			},
			Verilog: `module pos_post(gin, sum);
	input [1:0] gin;
	output sum;

	or2 U1(sum,gin[1],gin[0]);
endmodule`,
			VHDL: `entity pos_post is
	port (
		gin : in  std_logic_vector(1 downto 0);
		sum : out std_logic
	);
end entity;

architecture behavior of pos_post is
begin
	U1: or2 port map (A => gin(1), B => gin(0), Y => sum);
end architecture;`,
			Eval: func(in []bool) []bool {
				return []bool{in[0] || in[1]}
			},
			Delay: 1.7,
		},
		{
			Name: "pos_post_small",
			Kind: prefix.PostSmall,
			Ins: []Port{
				{Name: "gin", Bits: 1, Split: []int{1}},
			},
			Outs: []Port{
				{Name: "sum", Bits: 1},
			},
			Verilog: `module pos_post_small(gin, sum);
	input gin;
	output sum;

	assign sum = gin;
endmodule`,
			VHDL: `entity pos_post_small is
	port (
		gin : in  std_logic;
		sum : out std_logic
	);
end entity;

architecture behavior of pos_post_small is
begin
	sum <= gin;
end architecture;`,
			Eval: func(in []bool) []bool {
				return []bool{in[0]}
			},
			Delay: 0.5,
		},
	})
}
